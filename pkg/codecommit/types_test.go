package codecommit

import (
	"testing"
)

func TestPullRequestAuthor(t *testing.T) {
	tests := []struct {
		name string
		arn  string
		want string
	}{
		{"iam user", "arn:aws:iam::123456789012:user/jsmith", "jsmith"},
		{"assumed role", "arn:aws:sts::123456789012:assumed-role/Admin/jsmith", "jsmith"},
		{"no slash", "jsmith", "jsmith"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := &PullRequest{AuthorArn: tt.arn}
			if got := pr.Author(); got != tt.want {
				t.Errorf("Author() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvaluationStatus(t *testing.T) {
	tests := []struct {
		name string
		eval *Evaluation
		want string
	}{
		{"nil", nil, ""},
		{"approved", &Evaluation{Approved: true}, "Approved"},
		{
			"partial",
			&Evaluation{Satisfied: []string{"a"}, NotSatisfied: []string{"b", "c"}},
			"1 of 3 rules satisfied",
		},
		{
			"none",
			&Evaluation{NotSatisfied: []string{"b"}},
			"0 of 1 rules satisfied",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eval.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileChangeChange(t *testing.T) {
	for _, tt := range []struct {
		changeType string
		want       string
	}{
		{"A", "added"},
		{"D", "deleted"},
		{"M", "modified"},
	} {
		fc := FileChange{ChangeType: tt.changeType}
		if got := fc.Change(); got != tt.want {
			t.Errorf("Change(%q) = %q, want %q", tt.changeType, got, tt.want)
		}
	}
}

func TestCommentSetCounts(t *testing.T) {
	set := &CommentSet{ByFile: map[string]map[int][]Comment{
		"main.go": {
			3:  {{Author: "a", Content: "x"}},
			10: {{Author: "b", Content: "y"}, {Author: "c", Content: "z"}},
		},
	}}

	if got := set.FileCommentCount("main.go"); got != 3 {
		t.Errorf("FileCommentCount = %d, want 3", got)
	}
	if got := set.FileCommentCount("other.go"); got != 0 {
		t.Errorf("FileCommentCount for unknown file = %d, want 0", got)
	}
	if set.FileComments("main.go")[3][0].Author != "a" {
		t.Errorf("FileComments lookup failed")
	}

	var nilSet *CommentSet
	if nilSet.FileCommentCount("main.go") != 0 {
		t.Errorf("nil set should count zero")
	}
}

func TestPullRequestState(t *testing.T) {
	pr := &PullRequest{Status: StatusClosed}
	if !pr.IsClosed() {
		t.Errorf("IsClosed() = false for closed PR")
	}
	pr = &PullRequest{Status: StatusOpen, Evaluation: &Evaluation{Approved: true}}
	if pr.IsClosed() || !pr.IsApproved() {
		t.Errorf("open approved PR misreported: closed=%v approved=%v", pr.IsClosed(), pr.IsApproved())
	}
	if (&PullRequest{}).IsApproved() {
		t.Errorf("PR without evaluation should not be approved")
	}
}

func TestArnName(t *testing.T) {
	if got := arnName("arn:aws:iam::1:user/alice"); got != "alice" {
		t.Errorf("arnName = %q", got)
	}
	if got := arnName("bob"); got != "bob" {
		t.Errorf("arnName passthrough = %q", got)
	}
}
