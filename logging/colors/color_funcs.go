package colors

import "fmt"

// ColorFunc colorizes the provided value. Passing one to a logging call switches the color of the parts that follow.
type ColorFunc = func(s any) string

// Reset formats the value without color.
func Reset(s any) string {
	return fmt.Sprintf("%v", s)
}

// Red colors the value red.
func Red(s any) string { return Colorize(s, RED) }

// RedBold colors the value bold red.
func RedBold(s any) string { return Colorize(Colorize(s, RED), BOLD) }

// GreenBold colors the value bold green.
func GreenBold(s any) string { return Colorize(Colorize(s, GREEN), BOLD) }

// YellowBold colors the value bold yellow.
func YellowBold(s any) string { return Colorize(Colorize(s, YELLOW), BOLD) }

// BlueBold colors the value bold blue.
func BlueBold(s any) string { return Colorize(Colorize(s, BLUE), BOLD) }

// CyanBold colors the value bold cyan.
func CyanBold(s any) string { return Colorize(Colorize(s, CYAN), BOLD) }

// Bold emboldens the value.
func Bold(s any) string { return Colorize(s, BOLD) }
