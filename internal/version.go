package internal

// Version is the kotoba release version.
const Version = "0.3.0"
