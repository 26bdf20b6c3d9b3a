package config

// File is the top-level shape of a workflow definition file: a list of
// independently runnable workflows (spec.md §4.1 "a workflow definition").
type File struct {
	Workflows []Workflow `yaml:"workflows"`
}

// Glob is the YAML shape of spec.md §3's Glob: include/exclude patterns.
type Glob struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// Retry is the YAML shape of a CHANGE_REQUEST_FROM_SOT retry schedule
// (spec.md §6 --change-request-from-sot-retry=<schedule>).
type Retry struct {
	Delays      []string `yaml:"delays,omitempty"`
	Exponential bool     `yaml:"exponential,omitempty"`
}

// AutoPatch is the YAML shape of spec.md §4.4's autopatch configuration.
type AutoPatch struct {
	DirectoryPrefix               string `yaml:"directory_prefix,omitempty"`
	Directory                     string `yaml:"directory,omitempty"`
	Suffix                        string `yaml:"suffix,omitempty"`
	Header                        string `yaml:"header,omitempty"`
	Paths                         *Glob  `yaml:"paths,omitempty"`
	StripFileNamesAndLineNumbers  bool   `yaml:"strip_file_names_and_line_numbers,omitempty"`
}

// MergeImport is the YAML shape of spec.md §4.3's merge_import block.
type MergeImport struct {
	Strategy             string      `yaml:"strategy,omitempty"`
	PackagePath          string      `yaml:"package_path,omitempty"`
	Paths                *Glob       `yaml:"paths,omitempty"`
	UseConsistencyFile   bool        `yaml:"use_consistency_file,omitempty"`
	AfterMergeTransforms []Transform `yaml:"after_merge_transforms,omitempty"`
}

// Transform is one node of the transformation tree (spec.md §4.2). Exactly
// one of its fields is set; which one names the leaf or composite kind.
// goccy/go-yaml decodes the single mapping key under "transformations:"
// into whichever field has a matching tag, leaving the rest at their zero
// value.
type Transform struct {
	Replace              *ReplaceSpec    `yaml:"replace,omitempty"`
	Move                 *MoveSpec       `yaml:"move,omitempty"`
	Copy                 *MoveSpec       `yaml:"copy,omitempty"`
	PatchApply           *PatchApplySpec `yaml:"patch_apply,omitempty"`
	AddLabel             *LabelSpec      `yaml:"add_label,omitempty"`
	AddOrReplaceLabel    *LabelSpec      `yaml:"add_or_replace_label,omitempty"`
	ReplaceLabel         *LabelSpec      `yaml:"replace_label,omitempty"`
	RemoveLabel          *RemoveLabelSpec `yaml:"remove_label,omitempty"`
	AddTextBeforeLabels  *string         `yaml:"add_text_before_labels,omitempty"`
	SetMessage           *string         `yaml:"set_message,omitempty"`
	ReplaceMessage       *string         `yaml:"replace_message,omitempty"`
	UseLastChange        *struct{}       `yaml:"use_last_change,omitempty"`
	SquashNotes          *SquashNotesSpec `yaml:"squash_notes,omitempty"`
	ExposeLabel          *string         `yaml:"expose_label,omitempty"`
	SetLabel             *SetLabelSpec   `yaml:"set_label,omitempty"`
	DeleteLabel          *string         `yaml:"delete_label,omitempty"`
	TemplateLabel        *TemplateLabelSpec `yaml:"template_label,omitempty"`
	VerifyMatch          *VerifySpec     `yaml:"verify_match,omitempty"`
	VerifyNoMatch        *VerifySpec     `yaml:"verify_no_match,omitempty"`
	FailWithNoop         *string         `yaml:"fail_with_noop,omitempty"`
	SetExecutable        *SetExecutableSpec `yaml:"set_executable,omitempty"`
	IgnoreNoop           *Transform      `yaml:"ignore_noop,omitempty"`
	Sequence             []Transform     `yaml:"sequence,omitempty"`
}

type ReplaceSpec struct {
	Before     string            `yaml:"before"`
	After      string            `yaml:"after"`
	Paths      *Glob             `yaml:"paths,omitempty"`
	Multiline  bool              `yaml:"multiline,omitempty"`
	FirstOnly  bool              `yaml:"first_only,omitempty"`
	GroupRegex map[string]string `yaml:"group_regex,omitempty"`
}

type MoveSpec struct {
	From   Glob   `yaml:"from"`
	ToPath string `yaml:"to"`
}

type PatchApplySpec struct {
	DiffText      string `yaml:"diff"`
	ExcludedPaths *Glob  `yaml:"excluded_paths,omitempty"`
}

type LabelSpec struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type RemoveLabelSpec struct {
	Name         string `yaml:"name"`
	WholeMessage bool   `yaml:"whole_message,omitempty"`
}

type SquashNotesSpec struct {
	Header string `yaml:"header,omitempty"`
}

type SetLabelSpec struct {
	Name   string `yaml:"name"`
	Value  string `yaml:"value"`
	Hidden bool   `yaml:"hidden,omitempty"`
}

type TemplateLabelSpec struct {
	Name     string `yaml:"name"`
	Template string `yaml:"template"`
	Hidden   bool   `yaml:"hidden,omitempty"`
}

type VerifySpec struct {
	Pattern string `yaml:"pattern"`
	Paths   *Glob  `yaml:"paths,omitempty"`
}

type SetExecutableSpec struct {
	Paths      Glob `yaml:"paths"`
	Executable bool `yaml:"executable"`
}

// Workflow is the YAML shape of spec.md §4.1's "workflow definition": one
// migration's endpoints, file scopes, transformation list, and policy
// flags.
type Workflow struct {
	Name        string `yaml:"name"`
	Mode        string `yaml:"mode"`
	Origin      string `yaml:"origin"`
	Destination string `yaml:"destination"`

	OriginFiles      *Glob `yaml:"origin_files,omitempty"`
	DestinationFiles *Glob `yaml:"destination_files,omitempty"`

	Transformations []Transform `yaml:"transformations,omitempty"`

	RevIDLabel       string `yaml:"revid_label,omitempty"`
	CustomRevIDLabel string `yaml:"custom_rev_id_label,omitempty"`
	SetRevID         bool   `yaml:"set_rev_id,omitempty"`

	SmartPrune bool `yaml:"smart_prune,omitempty"`

	MergeImport                   *MergeImport `yaml:"merge_import,omitempty"`
	DisableConsistencyMergeImport bool         `yaml:"disable_consistency_merge_import,omitempty"`

	AutoPatch *AutoPatch `yaml:"autopatch,omitempty"`

	MigrateNoopChanges bool `yaml:"migrate_noop_changes,omitempty"`
	IgnoreNoop         bool `yaml:"ignore_noop,omitempty"`

	ReversibleCheck            bool  `yaml:"reversible_check,omitempty"`
	ReversibleCheckIgnoreFiles *Glob `yaml:"reversible_check_ignore_files,omitempty"`

	CheckLastRevState bool `yaml:"check_last_rev_state,omitempty"`

	ExpectedFixedRef string `yaml:"expected_fixed_ref,omitempty"`
	PinnedFixedRef   string `yaml:"pinned_fixed_ref,omitempty"`

	DiffInOrigin bool   `yaml:"diff_in_origin,omitempty"`
	InitHistory  bool   `yaml:"init_history,omitempty"`
	LastRevision string `yaml:"last_revision,omitempty"`
	Force        bool   `yaml:"force,omitempty"`

	DestLabelName             string `yaml:"dest_label_name,omitempty"`
	ChangeRequestParent       string `yaml:"change_request_parent,omitempty"`
	ChangeRequestFromSOTLimit int    `yaml:"change_request_from_sot_limit,omitempty"`
	ChangeRequestFromSOTRetry *Retry `yaml:"change_request_from_sot_retry,omitempty"`

	IterativeLimitChanges int `yaml:"iterative_limit_changes,omitempty"`
}
