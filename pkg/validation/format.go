// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/thermogain/thermogain/pkg/constants"
)

// SupportedOutputFormats lists every accepted output format.
var SupportedOutputFormats = []string{
	constants.OutputFormatPretty,
	constants.OutputFormatCSV,
	constants.OutputFormatXLSX,
	constants.OutputFormatPDF,
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, supported := range SupportedOutputFormats {
		if format == supported {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, %s, %s or %s, got %q",
		constants.OutputFormatPretty, constants.OutputFormatCSV,
		constants.OutputFormatXLSX, constants.OutputFormatPDF, format)
}

// IsBinaryFormat reports whether a format must be written to a file.
func IsBinaryFormat(format string) bool {
	return format == constants.OutputFormatXLSX || format == constants.OutputFormatPDF
}
