package assert

import (
	"fmt"
)

// Length panics unless value has exactly expected bytes
func Length(value string, expected int) {
	if len(value) != expected {
		msg := fmt.Sprintf("assert.Length expected %d actual %d", expected, len(value))
		panic(msg)
	}
}

// NonNegative panics if a cent amount dropped below zero
func NonNegative(name string, cents int64) {
	if cents < 0 {
		panic(fmt.Sprintf("assert.NonNegative %s is %d", name, cents))
	}
}
