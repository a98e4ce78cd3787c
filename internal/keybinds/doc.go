/*
Package keybinds maps keys to actions for the terminal menu.

# Contexts

Bindings live in a context:
  - global: available everywhere (ctrl+c)
  - menu: the search menu tree
  - filter: typing a fuzzy filter over menu labels
  - manage: the management screen
  - form: text fields on the management screen

A key bound in a specific context shadows the same key in global.

# Configuration File Format

Users override defaults in keybinds.json next to the other settings.
Each section maps an action to a comma separated list of keys:

	{
	  "menu": {
	    "navigate_up": "up,k",
	    "activate": "enter,l"
	  }
	}

Overrides replace every default key of the action in that context.
ctrl+c is reserved and always quits.
*/
package keybinds
