package render

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func (fn FormatterFunc) Format(value float64, axisLabel bool) string {
	return fn(value, axisLabel)
}

// Formats values as percentages, e.g. "37.50%"
func Percent(tag language.Tag) (formatter Formatter) {
	printer := message.NewPrinter(tag)
	formatter = FormatterFunc(func(value float64, axisLabel bool) string {
		if axisLabel {
			return printer.Sprintf("%.0f%%", value)
		}
		return printer.Sprintf("%.2f%%", value)
	})
	return
}

// Formats values as grouped integers truncated toward zero, e.g. "1,234"
func Integer(tag language.Tag) (formatter Formatter) {
	printer := message.NewPrinter(tag)
	formatter = FormatterFunc(func(value float64, axisLabel bool) string {
		return printer.Sprintf("%d", int64(math.Trunc(value)))
	})
	return
}

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// Formats kilobyte values with a binary unit suffix, e.g. 2048 -> "2.00 MB"
func ByteSize(tag language.Tag) (formatter Formatter) {
	printer := message.NewPrinter(tag)
	formatter = FormatterFunc(func(value float64, axisLabel bool) string {
		unit := 0
		scaled := value
		for math.Abs(scaled) >= 1024 && unit < len(byteUnits)-1 {
			scaled /= 1024
			unit++
		}
		if axisLabel {
			return printer.Sprintf("%.0f %s", scaled, byteUnits[unit])
		}
		return printer.Sprintf("%.2f %s", scaled, byteUnits[unit])
	})
	return
}
