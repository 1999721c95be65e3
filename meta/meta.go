// meta/meta.go
package meta

// MAX_TURNS defines the number of turns after which a game is a draw.
const MAX_TURNS = 200

// MEMBERS defines the number of determinized worlds searched per decision.
const MEMBERS = 4

// WORKERS defines the number of members searched concurrently.
const WORKERS = 4

// ITERATIONS defines the playout budget of one decision.
const ITERATIONS = 1000

// GAMES defines the number of games per experiment match up.
const GAMES = 10

// DECAY defines how much of the retained statistics survives each merge.
const DECAY = 0.9
