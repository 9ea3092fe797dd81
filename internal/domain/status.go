package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/conduit-lang/causeway/internal/resource"
)

// CauseStatus is stored as a one-letter code
type CauseStatus string

const (
	CauseDraft  CauseStatus = "d"
	CauseOpen   CauseStatus = "o"
	CauseClosed CauseStatus = "c"
)

// ObjectiveStatus is stored as a small integer
type ObjectiveStatus int

const (
	ObjectivePending ObjectiveStatus = iota
	ObjectiveMet
	ObjectiveMissed
)

// enum maps internal codes to the words clients see
type enum[T comparable] struct {
	external map[T]string
	internal map[string]T
}

func newEnum[T comparable](pairs map[T]string) *enum[T] {
	e := &enum[T]{
		external: pairs,
		internal: make(map[string]T, len(pairs)),
	}
	for code, word := range pairs {
		e.internal[word] = code
	}
	return e
}

func (e *enum[T]) words() string {
	words := make([]string, 0, len(e.internal))
	for w := range e.internal {
		words = append(words, w)
	}
	sort.Strings(words)
	return strings.Join(words, ", ")
}

// hooks converts with Get and Set so both directions see only the field value
func (e *enum[T]) hooks() resource.Hooks {
	return resource.Hooks{
		Get: func(value any) (any, error) {
			code, ok := value.(T)
			if !ok {
				return nil, fmt.Errorf("unexpected %T", value)
			}
			word, ok := e.external[code]
			if !ok {
				return nil, fmt.Errorf("unknown code %v", code)
			}
			return word, nil
		},
		Set: func(value any) (any, error) {
			word, _ := value.(string)
			code, ok := e.internal[word]
			if !ok {
				return nil, fmt.Errorf("must be one of %s", e.words())
			}
			return code, nil
		},
	}
}

var (
	causeStatuses = newEnum(map[CauseStatus]string{
		CauseDraft:  "draft",
		CauseOpen:   "open",
		CauseClosed: "closed",
	})

	objectiveStatuses = newEnum(map[ObjectiveStatus]string{
		ObjectivePending: "pending",
		ObjectiveMet:     "met",
		ObjectiveMissed:  "missed",
	})
)

// String returns the external word for the status
func (s CauseStatus) String() string {
	return causeStatuses.external[s]
}

// String returns the external word for the status
func (s ObjectiveStatus) String() string {
	return objectiveStatuses.external[s]
}
