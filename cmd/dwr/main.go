// Command dwr runs layer-shell surfaces on a Wayland compositor and
// inspects what the compositor offers.
package main

func main() {
	Execute()
}
