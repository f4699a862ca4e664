package templates

// FilterScript keeps the options of a dependent select in step with its
// parent select.  The original option set is cached once together with the
// select or optgroup each option belongs to; every change of the parent
// re-inserts the options tagged "sub_<value>" into that node.  Options
// tagged "static" are never removed.
const FilterScript = `<script type="text/javascript">
(function () {
	var parent = document.getElementById({{.Parent}});
	var child = document.getElementById({{.Child}});
	if (!parent || !child) {
		return;
	}
	var cached = Array.prototype.slice.call(child.options).filter(function (opt) {
		return opt.className !== "static";
	}).map(function (opt) {
		return {option: opt, parent: opt.parentNode};
	});
	function filter() {
		var tag = "sub_" + parent.value;
		cached.forEach(function (entry) {
			if (entry.option.parentNode) {
				entry.option.parentNode.removeChild(entry.option);
			}
		});
		cached.forEach(function (entry) {
			if (entry.option.className === tag) {
				entry.parent.appendChild(entry.option);
			}
		});
	}
	parent.addEventListener("change", function () {
		filter();
		child.dispatchEvent(new Event("change"));
	});
	filter();
})();
</script>
`
