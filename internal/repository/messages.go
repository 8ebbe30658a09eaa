package repository

// User-facing messages. The command layer prints them verbatim.
const (
	MsgRepoExists        = "A Gitlet version-control system already exists in the current directory."
	MsgNotInitialized    = "Not in an initialized Gitlet directory."
	MsgFileNotFound      = "File does not exist."
	MsgNoChanges         = "No changes added to the commit."
	MsgEmptyMessage      = "Please enter a commit message."
	MsgNothingToRemove   = "No reason to remove the file."
	MsgNoMatchingCommit  = "Found no commit with that message."
	MsgNotInCommit       = "File does not exist in that commit."
	MsgNoSuchCommit      = "No commit with that id exists."
	MsgUntrackedInTheWay = "There is an untracked file in the way; delete it, or add and commit it first."
	MsgNoSuchBranch      = "No such branch exists."
	MsgAlreadyOnBranch   = "No need to checkout the current branch."
	MsgBranchExists      = "A branch with that name already exists."
	MsgBranchMissing     = "A branch with that name does not exist."
	MsgRemoveActive      = "Cannot remove the current branch."
	MsgInvalidBranchName = "Invalid branch name."
	MsgUncommitted       = "You have uncommitted changes."
	MsgMergeSelf         = "Cannot merge a branch with itself."

	NoticeAncestor    = "Given branch is an ancestor of the current branch."
	NoticeFastForward = "Current branch fast-forwarded."
	NoticeConflict    = "Encountered a merge conflict."
)
