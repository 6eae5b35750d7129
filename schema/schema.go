package schema

// Annotation is used to attach arbitrary metadata to the schema objects
// (fields and edges) that the storage layer reads when it lays out tables.
type Annotation interface {
	// Name defines the name of the annotation to be retrieved by the readers.
	Name() string
}

// Merger wraps the single Merge function allows custom annotation to provide
// an implementation for merging 2 or more annotations from the same type.
type Merger interface {
	Merge(Annotation) Annotation
}

// Merge merges annotations with the same name. The last annotation of a
// given name wins unless it implements Merger.
func Merge(ants []Annotation) map[string]Annotation {
	merged := make(map[string]Annotation, len(ants))
	for _, ant := range ants {
		if ant == nil {
			continue
		}
		name := ant.Name()
		if cur, ok := merged[name]; ok {
			if m, ok := cur.(Merger); ok {
				merged[name] = m.Merge(ant)
				continue
			}
		}
		merged[name] = ant
	}
	return merged
}
