package cli

import "fmt"

func formatRatio(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatInt(v int) string {
	return fmt.Sprintf("%d", v)
}
