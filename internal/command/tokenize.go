// Package command turns raw operator lines into token slices.
package command

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
)

// Tokenize splits a command line on whitespace, honouring double quotes so
// multi-word arguments such as tire names stay together:
//
//	TIRE "Driver Front" 32.0  ->  [TIRE, Driver Front, 32.0]
//
// Blank lines and lines starting with '#' yield no tokens.
func Tokenize(line string) ([]string, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}
	tokens, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("tokenize %q: %w", line, err)
	}
	return tokens, nil
}
