package bmfmc

import "fmt"

// ConfigError reports an invalid or contradictory engine setup, such as
// an unknown feature policy or ambiguous high-fidelity data sources.
// Configuration errors are fatal and surface before any computation
// starts wherever possible.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("bmfmc: invalid option %q: %s", e.Option, e.Reason)
}

// MissingDataError reports that declared external data is unavailable.
type MissingDataError struct {
	Key string
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("bmfmc: declared data %q is unavailable", e.Key)
}

// DataError reports an invalid dataset, such as a training input row
// with no exact match in the Monte-Carlo input set.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return "bmfmc: invalid dataset: " + e.Reason
}
