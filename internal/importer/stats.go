package importer

// Stats counts the outcomes of one import run. Every data row lands in
// exactly one of Created, Duplicates, Errors or Skipped.
type Stats struct {
	TotalRows      int
	Created        int
	Duplicates     int
	Errors         int
	Skipped        int
	ImagesAttached int
}

// Add folds another run's counters into s, for CLIs that import several
// sheets or files in one invocation.
func (s *Stats) Add(other Stats) {
	s.TotalRows += other.TotalRows
	s.Created += other.Created
	s.Duplicates += other.Duplicates
	s.Errors += other.Errors
	s.Skipped += other.Skipped
	s.ImagesAttached += other.ImagesAttached
}
