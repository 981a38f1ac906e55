package sqlitebuilder

import "github.com/Masterminds/squirrel"

// builder squirrel с плейсхолдерами SQLite (?)
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

func Select(columns ...string) squirrel.SelectBuilder {
	return builder.Select(columns...)
}

func Insert(table string) squirrel.InsertBuilder {
	return builder.Insert(table)
}

func Update(table string) squirrel.UpdateBuilder {
	return builder.Update(table)
}

func Delete(table string) squirrel.DeleteBuilder {
	return builder.Delete(table)
}
