package statemachine

import (
	"errors"

	"market-delivery-api/models"
)

// Transition defines a valid state change
type Transition struct {
	From models.OrderStatus
	To   models.OrderStatus
}

// validTransitions is the authoritative state machine definition.
// The lifecycle only moves forward; there is no cancel or backward edge.
var validTransitions = []Transition{
	// Courier claims the order and starts shopping
	{From: models.StatusReceived, To: models.StatusShopping},
	// Courier leaves the market with the goods
	{From: models.StatusShopping, To: models.StatusInDelivery},
	// Courier hands the order to the customer
	{From: models.StatusInDelivery, To: models.StatusDelivered},
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[Transition]bool {
	m := make(map[Transition]bool)
	for _, t := range validTransitions {
		m[t] = true
	}
	return m
}()

// StatusOrder is the ordered lifecycle, used to derive tracking timelines
var StatusOrder = []models.OrderStatus{
	models.StatusReceived,
	models.StatusShopping,
	models.StatusInDelivery,
	models.StatusDelivered,
}

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition checks if an order may move from one state to another
func CanTransition(from, to models.OrderStatus) error {
	if transitionMap[Transition{From: from, To: to}] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " → " + string(to) +
			" is not allowed. Valid transitions from " + string(from) +
			" are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// Rank returns the position of a status in the lifecycle, -1 if unknown
func Rank(status models.OrderStatus) int {
	for i, s := range StatusOrder {
		if s == status {
			return i
		}
	}
	return -1
}

// ValidStatus reports whether the value is a known lifecycle state
func ValidStatus(status models.OrderStatus) bool {
	return Rank(status) >= 0
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
