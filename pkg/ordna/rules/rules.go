// Package rules implements the built-in extension taxonomy used to
// classify files when no external classification is available. The
// taxonomy is a static two-level table mapping file extensions to a
// Category/Subcategory destination.
package rules

import "strings"

// Names of managed folders that are not part of the taxonomy itself.
const (
	// FoldersName is the top-level folder that collects moved directories.
	FoldersName = "Folders"

	// MiscName is the sentinel destination meaning "no classification".
	// The external classifier returns it for files it cannot place.
	MiscName = "Misc"
)

// Subcategory groups the extensions that belong to one destination
// folder below a category.
type Subcategory struct {
	// Name is the subcategory folder name.
	Name string

	// Extensions lists the lowercased extensions (with leading dot)
	// that map here.
	Extensions []string
}

// Category is a top-level taxonomy folder with its subcategories.
type Category struct {
	// Name is the category folder name.
	Name string

	// Subs are the subcategories in declaration order.
	Subs []Subcategory
}

// Taxonomy is the built-in classification table. Order matters: reserved
// folder names and the destination list presented to the external
// classifier follow declaration order. Each extension appears exactly
// once across the whole table.
var Taxonomy = []Category{
	{Name: "Media", Subs: []Subcategory{
		{Name: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".heic", ".gif", ".bmp", ".tiff", ".webp", ".svg", ".ico", ".raw", ".cr2"}},
		{Name: "Video", Extensions: []string{".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv", ".webm", ".m4v", ".3gp"}},
		{Name: "Audio", Extensions: []string{".mp3", ".wav", ".aac", ".flac", ".ogg", ".m4a", ".wma", ".opus"}},
	}},
	{Name: "Documents", Subs: []Subcategory{
		{Name: "PDF", Extensions: []string{".pdf"}},
		{Name: "Spreadsheets", Extensions: []string{".xlsx", ".xls", ".csv", ".ods", ".tsv"}},
		{Name: "Presentations", Extensions: []string{".pptx", ".ppt", ".key", ".odp"}},
		{Name: "Text", Extensions: []string{".docx", ".doc", ".txt", ".rtf", ".odt", ".md", ".tex", ".log"}},
		{Name: "eBooks", Extensions: []string{".epub", ".mobi", ".azw3"}},
	}},
	{Name: "Installers", Subs: []Subcategory{
		{Name: "Executables", Extensions: []string{".exe", ".msi", ".bat", ".cmd", ".appx", ".msix"}},
		{Name: "Disk_Images", Extensions: []string{".dmg", ".iso", ".bin", ".img", ".vhd", ".vmdk"}},
	}},
	{Name: "Archives", Subs: []Subcategory{
		{Name: "Compressed", Extensions: []string{".zip", ".rar", ".7z", ".tar", ".gz", ".bz2", ".xz", ".pkg", ".deb", ".rpm"}},
	}},
	{Name: "Code", Subs: []Subcategory{
		{Name: "Scripts", Extensions: []string{".py", ".js", ".ts", ".sh", ".pl", ".php", ".rb", ".lua", ".ps1"}},
		{Name: "Source", Extensions: []string{".html", ".css", ".scss", ".c", ".cpp", ".h", ".java", ".kt", ".swift", ".go", ".rs", ".json", ".xml", ".yaml", ".yml", ".toml", ".ini", ".cfg"}},
		{Name: "Notebooks", Extensions: []string{".ipynb"}},
	}},
	{Name: "Design", Subs: []Subcategory{
		{Name: "Graphics", Extensions: []string{".psd", ".ai", ".sketch", ".fig", ".xd", ".indd"}},
		{Name: "Models_3D", Extensions: []string{".blend", ".obj", ".fbx", ".stl", ".step"}},
	}},
	{Name: "Fonts", Subs: []Subcategory{
		{Name: "Font_Files", Extensions: []string{".ttf", ".otf", ".woff", ".woff2", ".eot"}},
	}},
	{Name: "Data", Subs: []Subcategory{
		{Name: "Databases", Extensions: []string{".db", ".sqlite", ".sql", ".mdb", ".accdb"}},
		{Name: "Datasets", Extensions: []string{".parquet", ".avro", ".hdf5", ".npy", ".npz"}},
	}},
}

// Dest is a resolved taxonomy destination.
type Dest struct {
	// Category is the top-level folder name.
	Category string

	// Subcategory is the second-level folder name.
	Subcategory string
}

// Path returns the destination as a slash-joined relative folder.
func (d Dest) Path() string {
	return d.Category + "/" + d.Subcategory
}

// byExt indexes the taxonomy for constant-time lookup. First declaration
// wins, which is moot as long as the table stays duplicate-free.
var byExt = make(map[string]Dest)

// reserved holds lowercased folder names the scanner must not descend
// into or move: every category name plus the managed folders.
var reserved = make(map[string]struct{})

func init() {
	for _, cat := range Taxonomy {
		reserved[strings.ToLower(cat.Name)] = struct{}{}
		for _, sub := range cat.Subs {
			for _, ext := range sub.Extensions {
				if _, ok := byExt[ext]; ok {
					continue
				}
				byExt[ext] = Dest{Category: cat.Name, Subcategory: sub.Name}
			}
		}
	}
	reserved[strings.ToLower(FoldersName)] = struct{}{}
	reserved[strings.ToLower(MiscName)] = struct{}{}
}

// Lookup returns the taxonomy destination for a file extension. The
// extension is lowercased before matching; the leading dot is required.
// The second return value reports whether the extension is known.
func Lookup(ext string) (Dest, bool) {
	d, ok := byExt[strings.ToLower(ext)]
	return d, ok
}

// IsReserved reports whether a folder name belongs to the organizer's
// managed layout. Matching is case-insensitive.
func IsReserved(name string) bool {
	_, ok := reserved[strings.ToLower(name)]
	return ok
}

// Destinations returns every Category/Subcategory pair in table order.
// The external classifier receives this list as the set of generic
// fallback destinations.
func Destinations() []string {
	var dests []string
	for _, cat := range Taxonomy {
		for _, sub := range cat.Subs {
			dests = append(dests, cat.Name+"/"+sub.Name)
		}
	}
	return dests
}
