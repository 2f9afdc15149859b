package coverprofile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/speccover/internal/domain"
	"github.com/felixgeelhaar/speccover/internal/pathutil"
)

type Parser struct{}

// Parse reads a text coverage profile as written by go test
// -coverprofile or go tool covdata textfmt.
func (p Parser) Parse(path string) (domain.Profile, error) {
	cleanPath, err := pathutil.ValidatePath(path)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("invalid path: %w", err)
	}
	file, err := os.Open(cleanPath) // #nosec G304 -- path is validated above
	if err != nil {
		return domain.Profile{}, err
	}
	defer file.Close()
	return p.ParseReader(file)
}

// ParseReader parses a profile from r. Repeated blocks for the same
// source range are merged according to the profile mode.
func (Parser) ParseReader(r io.Reader) (domain.Profile, error) {
	scanner := bufio.NewScanner(r)
	profile := domain.Profile{Files: make(map[string][]domain.Block)}
	lineNo := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineNo++
		if lineNo == 1 {
			if !strings.HasPrefix(line, "mode:") {
				return domain.Profile{}, fmt.Errorf("invalid coverage mode line")
			}
			profile.Mode = strings.TrimSpace(strings.TrimPrefix(line, "mode:"))
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		filePath, block, err := parseLine(line)
		if err != nil {
			return domain.Profile{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
		profile.Files[filePath] = append(profile.Files[filePath], block)
	}
	if err := scanner.Err(); err != nil {
		return domain.Profile{}, err
	}
	if lineNo == 0 {
		return domain.Profile{}, fmt.Errorf("empty coverage profile")
	}
	for file, blocks := range profile.Files {
		profile.Files[file] = mergeBlocks(profile.Mode, blocks)
	}
	return profile, nil
}

// Merge combines profiles. The mode of the first profile wins.
func Merge(profiles ...domain.Profile) domain.Profile {
	out := domain.Profile{Files: make(map[string][]domain.Block)}
	for _, p := range profiles {
		if out.Mode == "" {
			out.Mode = p.Mode
		}
		for file, blocks := range p.Files {
			out.Files[file] = append(out.Files[file], blocks...)
		}
	}
	for file, blocks := range out.Files {
		out.Files[file] = mergeBlocks(out.Mode, blocks)
	}
	return out
}

// Write renders a profile in the text format Parse reads.
func Write(w io.Writer, profile domain.Profile) error {
	mode := profile.Mode
	if mode == "" {
		mode = "set"
	}
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "mode: %s\n", mode); err != nil {
		return err
	}
	files := make([]string, 0, len(profile.Files))
	for file := range profile.Files {
		files = append(files, file)
	}
	sort.Strings(files)
	for _, file := range files {
		for _, b := range profile.Files[file] {
			if _, err := fmt.Fprintf(bw, "%s:%d.%d,%d.%d %d %d\n",
				file, b.StartLine, b.StartCol, b.EndLine, b.EndCol, b.NumStmt, b.Count); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func parseLine(line string) (string, domain.Block, error) {
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return "", domain.Block{}, fmt.Errorf("invalid coverage line")
	}
	// The file name may itself contain a colon, so split on the last one.
	idx := strings.LastIndex(parts[0], ":")
	if idx < 0 {
		return "", domain.Block{}, fmt.Errorf("missing block position")
	}
	filePath := parts[0][:idx]

	var b domain.Block
	if _, err := fmt.Sscanf(parts[0][idx+1:], "%d.%d,%d.%d", &b.StartLine, &b.StartCol, &b.EndLine, &b.EndCol); err != nil {
		return "", domain.Block{}, fmt.Errorf("invalid block position")
	}
	stmtCount, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", domain.Block{}, fmt.Errorf("invalid statement count")
	}
	count, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", domain.Block{}, fmt.Errorf("invalid count")
	}
	b.NumStmt = stmtCount
	b.Count = count
	return filePath, b, nil
}

func mergeBlocks(mode string, blocks []domain.Block) []domain.Block {
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].StartLine != blocks[j].StartLine {
			return blocks[i].StartLine < blocks[j].StartLine
		}
		if blocks[i].StartCol != blocks[j].StartCol {
			return blocks[i].StartCol < blocks[j].StartCol
		}
		if blocks[i].EndLine != blocks[j].EndLine {
			return blocks[i].EndLine < blocks[j].EndLine
		}
		return blocks[i].EndCol < blocks[j].EndCol
	})
	out := blocks[:0]
	for _, b := range blocks {
		if n := len(out); n > 0 && out[n-1].SameRange(b) {
			last := &out[n-1]
			if mode == "set" {
				if b.Count > last.Count {
					last.Count = b.Count
				}
			} else {
				last.Count += b.Count
			}
			continue
		}
		out = append(out, b)
	}
	return out
}
