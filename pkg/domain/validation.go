package domain

// ValidationKind names a validation shape.
type ValidationKind string

const (
	ValidationAny         ValidationKind = "any"
	ValidationNumber      ValidationKind = "number"
	ValidationString      ValidationKind = "string"
	ValidationStringArray ValidationKind = "stringArray"
	ValidationFile        ValidationKind = "file"
	ValidationRemoteFunc  ValidationKind = "remoteFunc"
	ValidationLocalFunc   ValidationKind = "localFunc"
)

// Validation is the closed set of validation shapes. Every shape embeds
// AnyValidation, so required and equals apply to all of them.
type Validation interface {
	Kind() ValidationKind
	Common() AnyValidation
}

// AnyValidation holds the rules common to every shape.
// A nil Required means true.
type AnyValidation struct {
	Required *bool `json:"required,omitempty" yaml:"required,omitempty"`
	Equals   any   `json:"equals,omitempty" yaml:"equals,omitempty"`
}

func (v *AnyValidation) Kind() ValidationKind  { return ValidationAny }
func (v *AnyValidation) Common() AnyValidation { return *v }

// IsRequired reports the effective required flag.
func (v AnyValidation) IsRequired() bool {
	return v.Required == nil || *v.Required
}

// NumberValidation constrains a numeric value.
type NumberValidation struct {
	AnyValidation    `yaml:",inline"`
	MultipleOf       *float64  `json:"multipleOf,omitempty" yaml:"multipleOf,omitempty"`
	Maximum          *float64  `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	ExclusiveMaximum *float64  `json:"exclusiveMaximum,omitempty" yaml:"exclusiveMaximum,omitempty"`
	Minimum          *float64  `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	ExclusiveMinimum *float64  `json:"exclusiveMinimum,omitempty" yaml:"exclusiveMinimum,omitempty"`
	Enum             []float64 `json:"enum,omitempty" yaml:"enum,omitempty"`
}

func (v *NumberValidation) Kind() ValidationKind  { return ValidationNumber }
func (v *NumberValidation) Common() AnyValidation { return v.AnyValidation }

// StringValidation constrains a string value. Lengths count runes.
type StringValidation struct {
	AnyValidation `yaml:",inline"`
	MaxLength     *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	MinLength     *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	Pattern       string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Enum          []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	StartsWith    string   `json:"startsWith,omitempty" yaml:"startsWith,omitempty"`
	EndsWith      string   `json:"endsWith,omitempty" yaml:"endsWith,omitempty"`
	Includes      string   `json:"includes,omitempty" yaml:"includes,omitempty"`
}

func (v *StringValidation) Kind() ValidationKind  { return ValidationString }
func (v *StringValidation) Common() AnyValidation { return v.AnyValidation }

// StringArrayValidation constrains a list of strings.
type StringArrayValidation struct {
	AnyValidation `yaml:",inline"`
	MaxItems      *int     `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	MinItems      *int     `json:"minItems,omitempty" yaml:"minItems,omitempty"`
	UniqueItems   bool     `json:"uniqueItems,omitempty" yaml:"uniqueItems,omitempty"`
	Enum          []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Contains      string   `json:"contains,omitempty" yaml:"contains,omitempty"`
	ContainsAll   []string `json:"containsAll,omitempty" yaml:"containsAll,omitempty"`
	ContainsAny   []string `json:"containsAny,omitempty" yaml:"containsAny,omitempty"`
}

func (v *StringArrayValidation) Kind() ValidationKind  { return ValidationStringArray }
func (v *StringArrayValidation) Common() AnyValidation { return v.AnyValidation }

// FileValidation checks a path against the file system.
type FileValidation struct {
	AnyValidation `yaml:",inline"`
	Exists        bool `json:"exists,omitempty" yaml:"exists,omitempty"`
	NotExist      bool `json:"notExist,omitempty" yaml:"notExist,omitempty"`
}

func (v *FileValidation) Kind() ValidationKind  { return ValidationFile }
func (v *FileValidation) Common() AnyValidation { return v.AnyValidation }

// RemoteFuncValidation delegates to a remote procedure. The procedure returns
// nil or "" for success and a message string for failure.
type RemoteFuncValidation struct {
	AnyValidation `yaml:",inline"`
	Func          `yaml:",inline"`
}

func (v *RemoteFuncValidation) Kind() ValidationKind  { return ValidationRemoteFunc }
func (v *RemoteFuncValidation) Common() AnyValidation { return v.AnyValidation }

// LocalFuncValidation delegates to a validator registered with the engine under Validator.
type LocalFuncValidation struct {
	AnyValidation `yaml:",inline"`
	Validator     string `json:"validFunc" yaml:"validFunc"`
}

func (v *LocalFuncValidation) Kind() ValidationKind  { return ValidationLocalFunc }
func (v *LocalFuncValidation) Common() AnyValidation { return v.AnyValidation }

// Bool returns a pointer to b, for the optional flags of validation shapes.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i.
func Int(i int) *int { return &i }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }
