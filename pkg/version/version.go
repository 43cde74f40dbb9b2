package version

// Version is overridden at link time by the release build.
var Version = "dev"
