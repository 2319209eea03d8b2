package models

import "github.com/uptrace/bun"

type Venue struct {
	bun.BaseModel `bun:"table:venues"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Name     string `bun:"name,notnull,unique"`
	Priority int    `bun:"priority,notnull"`
}
