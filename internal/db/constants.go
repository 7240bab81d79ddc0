package db

// sqlTimeLayout is how timestamps are stored. Columns are declared TEXT so
// the driver hands them back as strings.
const sqlTimeLayout = "2006-01-02 15:04:05"

// sqlWindowClause filters dam readings by an inclusive recorded_at range.
const sqlWindowClause = "WHERE recorded_at >= ? AND recorded_at <= ?"
