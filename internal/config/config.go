// Package config reads the line-oriented search configuration file:
//
//	<line 1>  range start, hexadecimal
//	<line 2>  range end, hexadecimal
//	<line 3+> one secp256k1 public key per line, compressed or uncompressed hex
//
// Blank lines and trailing whitespace are ignored. Lines holding an invalid
// public key are reported and skipped.
package config

import (
	"bufio"
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mahdiidarabi/kangaroo/pkg/kangaroo"
)

// Search is a parsed search configuration.
type Search struct {
	RangeStart *big.Int
	RangeEnd   *big.Int
	Keys       []kangaroo.Point
}

// Parse reads and validates a search configuration file.
func Parse(path string, log *zap.Logger) (*Search, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", path)
	}
	defer f.Close()

	var lines []string
	var lineNos []int
	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line != "" {
			lines = append(lines, line)
			lineNos = append(lineNos, n)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}

	if len(lines) < 3 {
		return nil, errors.Errorf("%s: not enough arguments, need range start, range end and at least one key", path)
	}

	start, err := parseHex(lines[0])
	if err != nil {
		return nil, errors.Wrapf(err, "%s: line %d", path, lineNos[0])
	}
	end, err := parseHex(lines[1])
	if err != nil {
		return nil, errors.Wrapf(err, "%s: line %d", path, lineNos[1])
	}

	s := &Search{RangeStart: start, RangeEnd: end}
	for i := 2; i < len(lines); i++ {
		p, err := kangaroo.ParsePublicKey(lines[i])
		if err != nil {
			log.Warn("skipping invalid public key",
				zap.String("file", path), zap.Int("line", lineNos[i]), zap.Error(err))
			continue
		}
		s.Keys = append(s.Keys, p)
	}

	return s, nil
}

func parseHex(s string) (*big.Int, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, errors.Errorf("invalid hexadecimal value %q", s)
	}
	return v, nil
}
