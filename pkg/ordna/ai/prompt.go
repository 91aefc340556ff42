package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/larsvincent/ordna/pkg/ordna/rules"
	"github.com/larsvincent/ordna/pkg/ordna/types"
)

// Granularity selects how deep the external classifier should nest
// project folders. It only changes the prompt, never the local logic.
type Granularity string

// Supported granularity levels.
const (
	GranularityNormal Granularity = "normal"
	GranularityHigh   Granularity = "high"
)

// ErrInvalidGranularity indicates an unknown granularity name.
var ErrInvalidGranularity = errors.New("invalid granularity")

// ParseGranularity converts a string into a Granularity.
// Valid values are "normal" and "high"; the empty string means normal.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(GranularityNormal):
		return GranularityNormal, nil
	case string(GranularityHigh):
		return GranularityHigh, nil
	default:
		return "", fmt.Errorf("%w: %q (expected normal or high)", ErrInvalidGranularity, s)
	}
}

const granularityNormalText = `Create descriptive, project-aware folder names.
    Example: "Roblox/CityProject", "SchoolWork/Math", "Photography/Wedding".`

const granularityHighText = `**HIGH GRANULARITY MODE**: Create DEEPLY nested, extremely specific folders.
    Example: "Roblox/CityProject/Models", "School/Physics/Lab_Reports", "Work/Clients/Acme/Contracts".`

// buildPrompt renders the classification instruction for one batch of
// file descriptors. Each descriptor carries the name, humanized size,
// and modification date so the service can spot projects by naming
// patterns and recency.
func buildPrompt(files []types.FileEntry, granularity Granularity) string {
	granText := granularityNormalText
	if granularity == GranularityHigh {
		granText = granularityHighText
	}

	var desc strings.Builder
	for _, f := range files {
		fmt.Fprintf(&desc, "  - %s (%s, modified %s)\n", f.Name, f.HumanSize(), f.ModTime.Format("2006-01-02"))
	}

	return fmt.Sprintf(`You are an expert file organization AI that specializes in PROJECT DETECTION.

Your #1 priority is to detect PROJECTS and THEMES from filenames:
- Look for common prefixes, keywords, and naming patterns.
- Files like "BloxCityBuildings.obj", "BloxCityRoad.obj", "CityTexture.png" all belong to the SAME project folder.
- Files like "resume_v2.docx", "cover_letter.pdf" belong together in "JobSearch" or "Career".
- Files like "homework_ch5.pdf", "notes_physics.txt" belong in "School/Physics".

Rules:
1. **Projects First**: Group by detected project/theme, NOT by file type.
   - WRONG: putting "BloxCityBuildings.obj" in "Design/Models_3D"
   - RIGHT: putting it in "Roblox/CityProject" or "GameDev/BloxCity"
2. **Smart Naming**: Name folders after the project, game, or activity.
3. %s
4. Only use generic categories (%s) as a LAST RESORT for truly random files.
5. Use "Misc" only if a file is completely unrelated to anything else.

Files to classify:
%s
Return ONLY a valid JSON object mapping each filename to its destination folder.
Example: {"BloxCityBuildings.obj": "Roblox/CityProject", "resume_v2.docx": "Career/Applications"}`,
		granText, strings.Join(rules.Destinations(), ", "), desc.String())
}
