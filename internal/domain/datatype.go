package domain

// DataType identifies which concrete entity kind a group row wraps.
// The tag values are persisted in the groups and group_memberships tables,
// so they must never be renumbered.
type DataType int

const (
	DataTypePost      DataType = 0
	DataTypeCommunity DataType = 1
	DataTypeNetwork   DataType = 2
	DataTypeProject   DataType = 3
)

var dataTypeKinds = map[DataType]string{
	DataTypePost:      "post",
	DataTypeCommunity: "community",
	DataTypeNetwork:   "network",
	DataTypeProject:   "project",
}

func (t DataType) String() string {
	if kind, ok := dataTypeKinds[t]; ok {
		return kind
	}
	return "unknown"
}

func (t DataType) Valid() bool {
	_, ok := dataTypeKinds[t]
	return ok
}

// ParseDataType resolves a kind name back to its tag.
func ParseDataType(kind string) (DataType, error) {
	for t, k := range dataTypeKinds {
		if k == kind {
			return t, nil
		}
	}
	return 0, UnknownDataTypeError{Kind: kind}
}
