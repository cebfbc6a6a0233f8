package model

import "errors"

// 存储与排行榜共用的错误
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrCapacityViolation = errors.New("capacity smaller than live size")
	ErrMalformedRecord   = errors.New("malformed record line")
)
