package input

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ssea/domain/ranking"
	"ssea/internal/errors"
	"ssea/ports"
)

// GMTReader reads one sample set per row: name, description, members...
type GMTReader struct {
	filePath string
}

// NewGMTReader creates a GMT reader
func NewGMTReader(filePath string) *GMTReader {
	return &GMTReader{filePath: filePath}
}

// ReadSampleSets opens and parses the file
func (r *GMTReader) ReadSampleSets() ([]ranking.SampleSet, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.IOError(r.filePath, err)
	}
	defer file.Close()
	return ParseGMT(file, r.filePath)
}

// ParseGMT parses GMT text. Blank lines are skipped and a row needs at least
// a name and a description.
func ParseGMT(rd io.Reader, source string) ([]ranking.SampleSet, error) {
	var sets []ranking.SampleSet
	line := 0
	err := scanLines(rd, source, func(text string) error {
		line++
		if strings.TrimSpace(text) == "" {
			return nil
		}
		fields := splitTabs(text)
		if len(fields) < 2 {
			return parseErrorf(source, line, "sample set row needs a name and a description")
		}
		if fields[0] == "" {
			return parseErrorf(source, line, "empty sample set name")
		}
		sets = append(sets, ranking.NewSampleSet(fields[0], fields[1], fields[2:]))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sets, nil
}

// GMXReader reads sample sets laid out by column: names on row 1,
// descriptions on row 2, members below
type GMXReader struct {
	filePath string
}

// NewGMXReader creates a GMX reader
func NewGMXReader(filePath string) *GMXReader {
	return &GMXReader{filePath: filePath}
}

// ReadSampleSets opens and parses the file
func (r *GMXReader) ReadSampleSets() ([]ranking.SampleSet, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.IOError(r.filePath, err)
	}
	defer file.Close()
	return ParseGMX(file, r.filePath)
}

// ParseGMX parses GMX text. Blank cells are skipped; a member row wider than
// the header fails.
func ParseGMX(rd io.Reader, source string) ([]ranking.SampleSet, error) {
	var (
		names, descs []string
		members      [][]string
	)
	line := 0
	err := scanLines(rd, source, func(text string) error {
		line++
		switch line {
		case 1:
			names = splitTabs(text)
			for i, n := range names {
				if n == "" {
					return parseErrorf(source, line, "empty sample set name in column %d", i+1)
				}
			}
			members = make([][]string, len(names))
			return nil
		case 2:
			descs = splitTabs(text)
			if len(descs) != len(names) {
				return parseErrorf(source, line,
					"%d descriptions for %d sample set names", len(descs), len(names))
			}
			return nil
		}

		if strings.TrimSpace(text) == "" {
			return nil
		}
		for i, f := range splitTabs(text) {
			if f == "" {
				continue
			}
			if i >= len(names) {
				return parseErrorf(source, line, "member in column %d has no sample set", i+1)
			}
			members[i] = append(members[i], f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if line < 2 {
		return nil, parseErrorf(source, 0, "needs a name row and a description row")
	}

	sets := make([]ranking.SampleSet, len(names))
	for i := range names {
		sets[i] = ranking.NewSampleSet(names[i], descs[i], members[i])
	}
	return sets, nil
}

// NewSampleSetReader picks the GMX reader for .gmx files and GMT otherwise
func NewSampleSetReader(filePath string) ports.SampleSetReader {
	if strings.EqualFold(filepath.Ext(filePath), ".gmx") {
		return NewGMXReader(filePath)
	}
	return NewGMTReader(filePath)
}

// LoadSampleSets reads every source in order and concatenates the sets
func LoadSampleSets(readers ...ports.SampleSetReader) ([]ranking.SampleSet, error) {
	var all []ranking.SampleSet
	for _, r := range readers {
		sets, err := r.ReadSampleSets()
		if err != nil {
			return nil, err
		}
		all = append(all, sets...)
	}
	if len(all) == 0 {
		return nil, errors.InvalidInput("no sample sets found")
	}
	if err := ranking.ValidateSampleSets(all); err != nil {
		return nil, err
	}
	return all, nil
}

func scanLines(rd io.Reader, source string, fn func(text string) error) error {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if err := fn(strings.TrimRight(scanner.Text(), "\r")); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.IOError(source, err)
	}
	return nil
}

func splitTabs(text string) []string {
	fields := strings.Split(text, "\t")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}
