package services

import "errors"

// Sentinel errors returned by the tree core. Controllers map these to HTTP
// statuses with errors.Is, so services always wrap rather than replace them.
var (
	ErrInvalidOwnership            = errors.New("variable must reference exactly one of parent or lever")
	ErrNotFound                    = errors.New("record not found")
	ErrCircularReference           = errors.New("variable cannot be moved under its own descendant")
	ErrInactiveAncestor            = errors.New("cannot activate a node under an inactive ancestor")
	ErrDestructiveOperationPending = errors.New("variable has questions or children; re-invoke with force after reviewing the preview")
	ErrPartialMutation             = errors.New("multi-node mutation failed partway; re-run path repair over the affected lever")
	ErrDepthExceeded               = errors.New("variable tree exceeds the maximum supported depth")
	ErrStaleVersion                = errors.New("variable was modified concurrently; reload and retry")
	ErrDuplicateResponse           = errors.New("user already has a response for this survey")
	ErrEmptySelection              = errors.New("selection resolved to no questions")
	ErrSurveyInactive              = errors.New("survey is not accepting responses")
	ErrInvalidQuestion             = errors.New("select questions need a non-empty option list; text questions take none")
	ErrAnonymousNotAllowed         = errors.New("survey does not accept anonymous responses")
)

// PathSeparator joins ancestor names into the breadcrumb path.
const PathSeparator = " > "

// maxTreeDepth bounds every traversal; a well-formed framework is a few
// levels deep, so hitting this means a malformed or cyclic tree.
const maxTreeDepth = 64
