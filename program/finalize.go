package program

import (
	"fmt"
	"strings"
)

// Finalize instruction pricing, in microcredits per instruction. The
// opcode is the first token; dotted variants ("get.or_use") price as
// written, hash opcodes share one price.
const defaultInstructionCost = 1_000

var instructionCosts = map[string]uint64{
	"get":         10_000,
	"get.or_use":  10_000,
	"set":         10_000,
	"remove":      10_000,
	"contains":    10_000,
	"add":         500,
	"sub":         500,
	"mul":         1_500,
	"div":         1_500,
	"rand.chacha": 25_000,
}

// Cost prices the finalize logic: the checked sum of its instruction
// costs.
func (f *Finalize) Cost() (uint64, error) {
	var total uint64
	for _, instruction := range f.Instructions {
		cost := instructionCost(instruction)
		sum := total + cost
		if sum < total {
			return 0, fmt.Errorf("the finalize cost computation overflowed")
		}
		total = sum
	}
	return total, nil
}

func instructionCost(instruction string) uint64 {
	opcode, _, _ := strings.Cut(strings.TrimSpace(instruction), " ")
	if strings.HasPrefix(opcode, "hash.") {
		return 20_000
	}
	if cost, ok := instructionCosts[opcode]; ok {
		return cost
	}
	return defaultInstructionCost
}
