// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

/*
Package tree is the addressable key-value tree that mirrors remote telemetry.

Every point is addressed by a dot-delimited Path such as

	devices.1042.parameters.901.value

Container nodes (devices, folders, channels, states) carry a kind and a
display name and are created once with CreateIfAbsent. Leaf states carry a
JSON value and are overwritten with WriteValue on every synchronization
cycle.

# Key Layout

BadgerStore keeps two key spaces in a single Badger database:

	n/<path>  JSON encoded Node
	s/<path>  JSON encoded State

Prefix listing uses Badger's prefix iterators. A prefix matches a path when
the path equals the prefix or continues it with a dot, so "devices.1" does
not match "devices.10".

# Change Notification

Every committed WriteValue is broadcast as a Change to subscribers
registered with Subscribe. Delivery is non-blocking: a subscriber whose
buffer is full misses the change, and the drop is counted in
solarguardian_tree_notifications_dropped_total.

# Usage

	store, err := tree.Open("/data/solarguardian")
	if err != nil {
	    return err
	}
	defer store.Close()

	writes := []tree.Write{
	    tree.Create(tree.Join("powerStations", "7"), tree.KindDevice, "Farm"),
	    tree.Set(tree.Join("powerStations", "7", "name"), "Farm"),
	}
	if err := tree.Apply(ctx, store, writes); err != nil {
	    return err
	}
*/
package tree
