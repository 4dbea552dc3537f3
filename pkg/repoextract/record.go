// Package repoextract rebuilds embedded git repositories from in-memory
// payloads and attributes their commit history to authors.
package repoextract

import "time"

// Repository status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ModifiedFile is one file touched by a commit.
type ModifiedFile struct {
	Filename          string `json:"filename"`
	OldPath           string `json:"old_path,omitempty"`
	NewPath           string `json:"new_path,omitempty"`
	ChangeKind        string `json:"change_kind"`
	AddedLines        int    `json:"added_lines"`
	DeletedLines      int    `json:"deleted_lines"`
	SourceAfterChange string `json:"source_after_change,omitempty"`
}

// Path returns the repository path of the file after the change, the old
// path for deletions, or the bare filename when neither is known.
func (f ModifiedFile) Path() string {
	switch {
	case f.NewPath != "":
		return f.NewPath
	case f.OldPath != "":
		return f.OldPath
	default:
		return f.Filename
	}
}

// CommitRecord is one commit attributed to the target user.
type CommitRecord struct {
	Hash          string         `json:"hash"`
	AuthorName    string         `json:"author_name"`
	AuthorEmail   string         `json:"author_email"`
	Date          time.Time      `json:"date"`
	Message       string         `json:"message"`
	ModifiedFiles []ModifiedFile `json:"modified_files"`
}

// AuthorStats aggregates one author's activity in a repository.
type AuthorStats struct {
	Commits       int `json:"commits"`
	LinesAdded    int `json:"lines_added"`
	LinesDeleted  int `json:"lines_deleted"`
	FilesModified int `json:"files_modified"`
}

// RepoContext describes the repository as a whole, across all authors.
type RepoContext struct {
	TotalContributors int                     `json:"total_contributors"`
	TotalCommits      int                     `json:"total_commits"`
	TotalLinesAdded   int                     `json:"total_lines_added"`
	TotalLinesDeleted int                     `json:"total_lines_deleted"`
	Authors           map[string]*AuthorStats `json:"authors"`
}

// Record is the extraction result for one repository.
type Record struct {
	Name       string `json:"repository_name"`
	Path       string `json:"repository_path"`
	HeadCommit string `json:"head_commit,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`

	Context     RepoContext    `json:"repository_context"`
	UserKey     string         `json:"user_key,omitempty"`
	UserCommits []CommitRecord `json:"user_commits"`

	UserLinesAdded    int `json:"user_lines_added"`
	UserLinesDeleted  int `json:"user_lines_deleted"`
	UserFilesModified int `json:"user_files_modified"`

	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	DurationDays int       `json:"duration_days"`
}

// OK reports whether extraction succeeded.
func (r *Record) OK() bool {
	return r.Status == StatusOK
}

// UserCommitCount returns the number of commits attributed to the user.
func (r *Record) UserCommitCount() int {
	return len(r.UserCommits)
}
