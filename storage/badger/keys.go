package badger

import "github.com/poiesic/casbert/core"

// Key prefixes for the stored collections. Every key is prefix:id.
const (
	variablePrefix  = "var"
	componentPrefix = "cmp"
	cellmlPrefix    = "cml"
	sedmlPrefix     = "sed"
	workspacePrefix = "wsp"
	imagePrefix     = "img"
	unitPrefix      = "unt"
	mathPrefix      = "mth"
	indexPrefix     = "idx"
	clustersKey     = "clu:table"
)

// collectionPrefixes names each collection's key prefix for Counts.
var collectionPrefixes = map[string]string{
	"variables":  variablePrefix,
	"components": componentPrefix,
	"cellmls":    cellmlPrefix,
	"sedmls":     sedmlPrefix,
	"workspaces": workspacePrefix,
	"images":     imagePrefix,
	"units":      unitPrefix,
	"maths":      mathPrefix,
	"indexes":    indexPrefix,
}

// makeRecordKey generates the key of a record by collection prefix and id.
func makeRecordKey(prefix, id string) []byte {
	buf := make([]byte, 0, len(prefix)+1+len(id))
	buf = append(buf, prefix...)
	buf = append(buf, ':')
	return append(buf, id...)
}

// makePrefix generates the scan prefix of a collection.
func makePrefix(prefix string) []byte {
	return []byte(prefix + ":")
}

// makeIndexKey generates the key of an entity type's embedding index.
func makeIndexKey(entity core.EntityType) []byte {
	return makeRecordKey(indexPrefix, string(entity))
}
