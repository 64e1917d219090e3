package domain

// PatchType is the family a patch belongs to
type PatchType string

const (
	PatchHTML PatchType = "html"
	PatchCSS  PatchType = "css"
	PatchARIA PatchType = "aria"
)

// Artifact names the file kind a patch edits
type Artifact string

const (
	ArtifactHTML Artifact = "html"
	ArtifactCSS  Artifact = "css"
)

// Outcome tells whether a patch changes anything
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeNoOp    Outcome = "noop"
)

// Patch is a before/after code change for one fused issue
type Patch struct {
	IssueID          string              `json:"issue_id"`
	IssueType        IssueType           `json:"issue_type"`
	Selector         string              `json:"selector"`
	Severity         Severity            `json:"severity"`
	WCAGLevel        WCAGLevel           `json:"wcag_level"`
	WCAGRule         string              `json:"wcag_rule"`
	PatchType        PatchType           `json:"patch_type"`
	Before           map[Artifact]string `json:"before"`
	After            map[Artifact]string `json:"after"`
	Diff             map[Artifact]string `json:"diff"`
	RequiresApproval bool                `json:"requires_approval"`
	Confidence       float64             `json:"confidence"`
	FixConfidence    float64             `json:"fix_confidence"`
	Explanation      string              `json:"explanation"`
	PreviewScript    string              `json:"preview_script"`
	VCSPatch         string              `json:"vcs_patch"`
	Outcome          Outcome             `json:"outcome"`
	Reason           string              `json:"reason,omitempty"`
}

// IsNoOp returns true when the patch leaves the document unchanged
func (p *Patch) IsNoOp() bool {
	return p.Outcome == OutcomeNoOp
}

// FixResult is the per-issue outcome of a batch fix
type FixResult struct {
	IssueID string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Patch   *Patch `json:"patch,omitempty"`
}
