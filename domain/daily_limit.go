package domain

type Decision int

const (
	Admitted Decision = iota
	RejectedIdentityLimit
	RejectedGlobalLimit
)
