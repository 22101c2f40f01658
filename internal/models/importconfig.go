package models

// ImportConfig describes how to read one bank's CSV export: file framing,
// explicit column bindings and the number formats the bank uses. All fields
// are inert data; callers decide where configurations are loaded from.
type ImportConfig struct {
	Name                 string `yaml:"name"`
	Delimiter            string `yaml:"delimiter"`
	Encoding             string `yaml:"encoding"`
	SkipRows             int    `yaml:"skip_rows"`
	DateColumn           string `yaml:"date_column"`
	DateFormat           string `yaml:"date_format"` // Go layout or strptime directives
	AmountColumn         string `yaml:"amount_column"`
	DescriptionColumn    string `yaml:"description_column"`
	SenderReceiverColumn string `yaml:"sender_receiver_column,omitempty"`
	DecimalSeparator     string `yaml:"decimal_separator"`
	ThousandsSeparator   string `yaml:"thousands_separator"`
}

// DefaultImportConfig returns German banking defaults: semicolon-delimited
// UTF-8, day-first dates, comma decimals.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		Delimiter:          ";",
		Encoding:           "utf-8",
		DateFormat:         "%d.%m.%Y",
		DecimalSeparator:   ",",
		ThousandsSeparator: ".",
	}
}
