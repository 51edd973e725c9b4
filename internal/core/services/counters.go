package services

type Counters interface {
	IncrementKept()
	DecrementKept()
	IncrementDeleted()
	DecrementDeleted()
}
