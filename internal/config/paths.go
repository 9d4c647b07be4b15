/* swiftmtp - MTP/PTP host-side protocol engine
 *
 * Default filesystem layout for daemon configuration and state.
 */

package config

const (
	// DirConf is the directory searched for swiftmtp.conf.
	DirConf = "/etc/swiftmtp"

	// FileConf is the configuration file name within DirConf.
	FileConf = "swiftmtp.conf"

	// DirState is the root of the daemon's persistent state.
	DirState = "/var/lib/swiftmtp"

	// DirLock holds the single-instance lock file.
	DirLock = DirState + "/lock"

	// FileLock is the single-instance lock file path.
	FileLock = DirLock + "/swiftmtp.lock"

	// DirProfiles holds one JSON file per learned device fingerprint.
	DirProfiles = DirState + "/profiles"

	// FileControlSocket is the Unix-domain socket the daemon's status
	// endpoint listens on, and the CLI's status subcommand dials.
	FileControlSocket = DirState + "/control.sock"

	// FileIndex is the default path of the reference SQLite object
	// index.
	FileIndex = DirState + "/index.db"
)
