// package repositories provides the persistence layer for review state.
//
// ReviewStore owns the review_log table exclusively: status and retry
// schedule per track key. NotFoundLog owns the line-oriented album
// not-found file. Both are constructed explicitly and passed by reference
// through the pipeline; there is no ambient global store.
package repositories
