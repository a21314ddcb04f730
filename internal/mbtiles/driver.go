package mbtiles

// The sqlite driver is the package's one optional dependency. Keeping the
// registration in its own file makes the capability easy to exclude in
// builds that do not want the cgo-free sqlite port, in which case
// DriverAvailable reports false and MBTiles sources refuse to initialize.

import _ "modernc.org/sqlite"
