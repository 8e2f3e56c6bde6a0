package repository

import "errors"

var (
	ErrHospitalNotFound = errors.New("hospital not found")
	ErrAdminNotFound    = errors.New("admin not found")
	ErrDuplicateEmail   = errors.New("an admin with this email already exists for the hospital")
)
