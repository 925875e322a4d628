package models

import "time"

type RefreshToken struct {
	UserName string
	Token    string
	Expires  time.Time
}
