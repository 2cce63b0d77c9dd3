package sqldb

var SplitStatements = splitStatements
var SQLiteDSN = sqliteDSN
