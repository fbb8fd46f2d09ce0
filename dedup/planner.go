package dedup

import "imagededup/types"

// BuildPlan turns every fingerprint group into a move-one/delete-rest plan.
// The keep record is always the group's first element. The policy is purely
// positional: it does not search the group for a member already resident in
// the output directory, so when the keep record lives elsewhere an output-
// directory duplicate is deleted and the keep record moved in, transiently
// duplicating content there until the deletion lands.
func BuildPlan(index types.SignatureMap, outputDir string) types.Plan {
	var plan types.Plan
	for _, records := range index {
		if len(records) == 0 {
			continue
		}
		keep := records[0]
		if keep.Dir != outputDir {
			plan.Moves = append(plan.Moves, types.Move{
				Record:  keep,
				DestDir: outputDir,
			})
		}
		plan.Deletes = append(plan.Deletes, records[1:]...)
	}
	return plan
}
