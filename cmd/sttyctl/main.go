/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package main

func main() {
	Execute()
}
