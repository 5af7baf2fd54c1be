package recipe

import (
	"fmt"

	"github.com/KaramelBytes/tidyloom-cli/internal/utils"
)

const starterTemplate = `# tidyloom recipe: steps run in order, each on the table named by "table"
# (default: the previous result) and stored under "into" (default: same name).
name: %[1]s
inputs:
  - name: %[1]s
    path: %[2]s
    reader: tidy        # tidy | categorical
    # na: ["", "NA", "N/A"]
    # types: ["score=number"]
steps:
  - op: clean_names
  # - op: rename
  #   from: ""
  #   to: id
  # - op: filter
  #   where: score > 10 and not is_null(team)
  # - op: mutate
  #   column: ratio
  #   expr: score / minutes
  # - op: recode
  #   column: score
  #   into: band
  #   breaks: [10, 20]
  #   labels: [low, mid, high]
  # - op: melt
  #   id: [round]
  #   names_to: player
  #   values_to: score
  # - op: join
  #   with: other
  #   how: left
  #   by: ["id=player_id"]
  - op: describe
  - op: write
    path: %[1]s.clean.csv
`

// Starter returns a commented recipe that reads input.
func Starter(input string) []byte {
	name := utils.TableName(input)
	if name == "" || name == "." {
		name = "data"
	}
	return []byte(fmt.Sprintf(starterTemplate, name, input))
}
