package align

import "fmt"

// Candidate is one proposed row ordering from a single backend. Order holds
// target-row indices: Order[i] names the target row that should sit at
// position i when the target file is rewritten.
type Candidate struct {
	Backend    string
	Order      []int
	Confidence float64
}

// Validate checks that the candidate is a permutation of 0..rowCount-1.
func (c Candidate) Validate(rowCount int) error {
	if len(c.Order) != rowCount {
		return fmt.Errorf("backend %s proposed %d positions for %d rows", c.Backend, len(c.Order), rowCount)
	}
	seen := make([]bool, rowCount)
	for position, rowIndex := range c.Order {
		if rowIndex < 0 || rowIndex >= rowCount {
			return fmt.Errorf("backend %s position %d references row %d outside 0..%d", c.Backend, position, rowIndex, rowCount-1)
		}
		if seen[rowIndex] {
			return fmt.Errorf("backend %s references row %d twice", c.Backend, rowIndex)
		}
		seen[rowIndex] = true
	}
	return nil
}
