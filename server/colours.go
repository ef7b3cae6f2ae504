package server

// ANSI colours for the development route log
const (
	Green   = "\033[32m"
	Blue    = "\033[34m"
	Cyan    = "\033[36m"
	Yellow  = "\033[33m"
	Magenta = "\033[35m"
	Red     = "\033[31m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m" // Reset to default color
)

var methodColors = map[string]string{
	"GET":    Green,
	"POST":   Blue,
	"PUT":    Cyan,
	"DELETE": Yellow,
	"PATCH":  Magenta,
}

// outcomeColors marks guard decisions in the development log.
var outcomeColors = map[string]string{
	"allow":              Green,
	"loading":            Cyan,
	"redirect_login":     Yellow,
	"redirect_not_found": Red,
}
