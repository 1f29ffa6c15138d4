package features

// Models trained on absolute home/away stat pairs learn the column ordering
// itself as a home-win signal. Each paired slot is therefore folded into a
// signed home-minus-away difference before training, and the identical
// transform runs on the serving path so models always see the representation
// they were fitted on.

// teamDifferencePairs lists the (home slot, away slot) pairs of the team
// group that collapse into one difference. The away slot is zeroed.
var teamDifferencePairs = [][2]int{
	{0, 1},   // win rate
	{2, 3},   // scoring average
	{4, 5},   // points allowed
	{6, 7},   // last-5 form
	{8, 9},   // venue record
	{10, 11}, // streak
	{12, 13}, // point differential
	{20, 21}, // rest days
	{23, 24}, // games played
	{25, 26}, // recent scoring
	{27, 28}, // venue split
}

// teamDifferenceNames names each folded pair for top-factor explanations,
// indexed like teamDifferencePairs.
var teamDifferenceNames = []string{
	"win rate advantage",
	"scoring advantage",
	"defensive advantage",
	"recent form advantage",
	"venue record advantage",
	"streak advantage",
	"point differential advantage",
	"rest advantage",
	"schedule depth advantage",
	"recent scoring advantage",
	"venue split advantage",
}

// variantHasTeamGroup reports whether the variant's vector starts with the
// team group
func variantHasTeamGroup(modelType string) bool {
	groups, err := VariantGroups(modelType)
	if err != nil || len(groups) == 0 {
		return false
	}
	return groups[0] == GroupTeam
}

// DifferenceVector returns a copy of a variant vector with paired home/away
// team stats folded into signed differences. Vectors for variants without
// the team group pass through unchanged (as a copy).
func DifferenceVector(vec []float64, modelType string) []float64 {
	out := make([]float64, len(vec))
	copy(out, vec)
	if !variantHasTeamGroup(modelType) {
		return out
	}
	for _, pair := range teamDifferencePairs {
		h, a := pair[0], pair[1]
		if h >= len(out) || a >= len(out) {
			continue
		}
		out[h] = clampSigned(vec[h] - vec[a])
		out[a] = 0
	}
	return out
}

// DifferenceFactor is one named, signed difference slot of a transformed
// vector, the raw material for top-factor explanations.
type DifferenceFactor struct {
	Name  string
	Slot  int
	Value float64
}

// DifferenceFactors extracts the named difference slots from an already
// transformed variant vector. Variants without the team group have none.
func DifferenceFactors(diffVec []float64, modelType string) []DifferenceFactor {
	if !variantHasTeamGroup(modelType) {
		return nil
	}
	factors := make([]DifferenceFactor, 0, len(teamDifferencePairs))
	for i, pair := range teamDifferencePairs {
		h := pair[0]
		if h >= len(diffVec) {
			continue
		}
		factors = append(factors, DifferenceFactor{
			Name:  teamDifferenceNames[i],
			Slot:  h,
			Value: diffVec[h],
		})
	}
	return factors
}
