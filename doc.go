/*
Package citywalk is a city-walk planner: it locates the user, collects a theme and a duration,
asks a generative model for a short walkable itinerary and guides the user through the stops
one at a time, handing each stop to a maps application.

The flow is a four-state view machine (Welcome, Preferences, Preview, Navigation) driven by a
single Planner. Hosts (terminal, HTTP, MCP) only call triggers and render snapshots; the
collaborators (geolocation, the generation service, the maps application) sit behind ports.

# Usage

	completer, err := gemini.New(ctx, os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		log.Fatal(err)
	}

	planner, err := citywalk.New(
		citywalk.WithLocator(locator.NewIPAPI()),
		citywalk.WithCompleter(completer),
		citywalk.WithMapLauncher(maps.BrowserLauncher{}),
	)
	if err != nil {
		log.Fatal(err)
	}

	snap, err := planner.Start(ctx)                 // WELCOME -> PREFERENCES
	snap, err = planner.Submit(ctx, snap.Preferences) // PREFERENCES -> ROUTE_PREVIEW
	snap, err = planner.StartNavigation(ctx)          // ROUTE_PREVIEW -> NAVIGATION
	url, err := planner.OpenMap(ctx)                  // directions to the current stop

Every trigger returns the snapshot taken after it settled, even on error, so a host can always
re-render. Location failures leave the planner in Welcome with a blocking alert; generation
failures leave it in Preferences with a dismissible banner.
*/
package citywalk
