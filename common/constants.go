package common

// Version is the version of the inliner core itself, independent of any
// host compiler embedding it.
const Version = "0.1.0"
