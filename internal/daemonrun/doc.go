// Package daemonrun wires config, logging, the job store, the workflow
// manager, and the HTTP daemon into one foreground process. Both ditd and
// "dit daemon" run through Run.
package daemonrun
