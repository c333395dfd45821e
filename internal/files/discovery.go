package files

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// extractPattern matches yearly extract files such as 2019.csv or 2019_regnskap.csv.
var extractPattern = regexp.MustCompile(`^(\d{4}).*\.csv$`)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Year    int
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindExtracts returns the yearly accounting extracts in dir sorted by year.
// The year is read from the first four characters of the file name.
func (d *Discovery) FindExtracts(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		m := extractPattern.FindStringSubmatch(strings.ToLower(name))
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Year:    year,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Year != files[j].Year {
			return files[i].Year < files[j].Year
		}
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// FilterYears keeps the files whose year is at most lastYear.
// A lastYear of zero keeps everything.
func FilterYears(files []FileInfo, lastYear int) []FileInfo {
	if lastYear == 0 {
		return files
	}
	var filtered []FileInfo
	for _, file := range files {
		if file.Year <= lastYear {
			filtered = append(filtered, file)
		}
	}
	return filtered
}

// Years lists the distinct years covered by files, in order.
func Years(files []FileInfo) []int {
	seen := make(map[int]bool, len(files))
	var years []int
	for _, file := range files {
		if !seen[file.Year] {
			seen[file.Year] = true
			years = append(years, file.Year)
		}
	}
	sort.Ints(years)
	return years
}
