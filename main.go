package main

import "civictrack-be/cli"

// main godoc
//
//	@title						CivicTrack API
//	@version					1.0
//	@description				Civic issue reporting for constituencies, panchayats and wards.
//	@BasePath					/api
//	@securityDefinitions.apikey	Bearer
//	@in							header
//	@name						Authorization
func main() {
	cli.Execute()
}
