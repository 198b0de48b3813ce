package records

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/ougirez/bizmap/internal/domain"
)

// readSnapshot loads the pre-bundled newline-delimited JSON dataset.
// No pagination; the file is read once in full. Lines that fail to
// decode are skipped so a partially corrupt snapshot still yields data.
func readSnapshot(path string) ([]*domain.Business, error) {
	if path == "" {
		return nil, fmt.Errorf("no snapshot path configured")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	var businesses []*domain.Business
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		b := new(domain.Business)
		if err := sonic.UnmarshalString(line, b); err != nil {
			continue
		}
		businesses = append(businesses, b)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner.Err: %w", err)
	}

	if len(businesses) == 0 {
		return nil, fmt.Errorf("snapshot %s contained no records", path)
	}

	return businesses, nil
}
