// Package fileutil holds the small filesystem helpers the pipeline shares:
// idempotent directory creation, the "~N KB" size report, and verified
// copies for pulling local datasets into the artifacts tree.
package fileutil
