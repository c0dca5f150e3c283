// Package identity derives the stable identifiers used across an experiment:
// case, ensemble, realization and entity UUIDs.
//
// All derivations are pure functions over stable strings. Identical inputs
// yield identical UUIDs across processes and machines, so decoupled services
// can compute the same identifier independently. Callers are responsible for
// choosing stable inputs; nothing here rejects timestamp- or pid-derived
// strings.
package identity

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Namespace is the fixed namespace for all derived UUIDs. Changing it would
// silently re-identify every artifact ever exported.
var Namespace = uuid.MustParse("8c5cd9cb-4a22-4b02-b570-e6c8a394a8b5")

// DeriveUUID produces a deterministic UUID from the concatenation of the
// given stable parts, using namespace-based (MD5) UUID construction.
func DeriveUUID(parts ...string) uuid.UUID {
	return uuid.NewMD5(Namespace, []byte(strings.Join(parts, "")))
}

// ForEnsemble derives the ensemble UUID from the case UUID and the ensemble
// name, e.g. "iter-0" or "pred".
func ForEnsemble(caseUUID uuid.UUID, ensembleName string) uuid.UUID {
	return DeriveUUID(caseUUID.String(), ensembleName)
}

// ForRealization derives the realization UUID from the case UUID, the
// ensemble UUID and the integer realization id.
func ForRealization(caseUUID, ensembleUUID uuid.UUID, realizationID int) uuid.UUID {
	return DeriveUUID(caseUUID.String(), ensembleUUID.String(), strconv.Itoa(realizationID))
}

// ForEntity derives the cross-realization entity UUID from the case UUID and
// the relative path of the object within a realization. Every realization
// exporting to the same relative path shares the entity UUID, which lets
// downstream consumers group "the same output slot" without knowing
// realization ids.
func ForEntity(caseUUID uuid.UUID, relativePath string) uuid.UUID {
	return DeriveUUID(caseUUID.String(), relativePath)
}

// ForAggregation derives an aggregation id from the UUIDs of the contributing
// realizations. The input order does not matter; the UUIDs are sorted before
// hashing so the same set of realizations always produces the same id.
func ForAggregation(realizationUUIDs []string) uuid.UUID {
	sorted := make([]string, len(realizationUUIDs))
	copy(sorted, realizationUUIDs)
	sort.Strings(sorted)
	return DeriveUUID(sorted...)
}
