package git

import "github.com/mschirtzinger/git-copyright/internal/vcs"

// Importing this package for side effects makes vcs.Open handle git
// repositories:
//
//	import _ "github.com/mschirtzinger/git-copyright/internal/vcs/git"
func init() {
	vcs.Register(vcs.TypeGit, func(root string) (vcs.VCS, error) {
		return New(root)
	})
}
