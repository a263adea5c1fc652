package types

type CommandName string

const (
	PING CommandName = "PING"
	ECHO CommandName = "ECHO"
	GET  CommandName = "GET"
	SET  CommandName = "SET"
)

// Command is a single decoded client request.
// Key and Value never alias the connection buffer they were decoded from.
type Command struct {
	Name  CommandName
	Key   []byte  // GET, SET
	Value []byte  // SET value, ECHO message
	Px    *uint64 // SET expiry in milliseconds, relative to receipt
}

func NewPing() Command {
	return Command{Name: PING}
}

func NewEcho(message []byte) Command {
	return Command{Name: ECHO, Value: message}
}

func NewGet(key []byte) Command {
	return Command{Name: GET, Key: key}
}

func NewSet(key, value []byte, px *uint64) Command {
	return Command{Name: SET, Key: key, Value: value, Px: px}
}
