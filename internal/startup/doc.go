// Package startup handles process lifecycle logging: the startup banner,
// system information, route listing, and shutdown progress. Keeping this
// noise out of main() makes the boot sequence there readable.
package startup
