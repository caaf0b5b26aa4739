package models

// Security is a tracked listed company, identified by its exchange ticker.
type Security struct {
	ID       int64  `db:"id"`
	Ticker   string `db:"ticker"`
	LongName string `db:"long_name"`
}
