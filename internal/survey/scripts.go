package survey

// In-page scripts. Each is an arrow function evaluated through the driver;
// selectors for the survey's structural conventions are passed as arguments
// so the scripts themselves stay platform-neutral.

// scanQuestionsJS walks every question container under the survey root in
// DOM order and returns the raw material the classifier and selector
// resolver work from. Question text is collected by walking text nodes,
// skipping anything inside an input, option or hidden element.
const scanQuestionsJS = `(rootSel, questionSel, trackSel, dataAttr) => {
	const root = document.querySelector(rootSel);
	if (!root) return { rootFound: false, questions: [] };

	function isHidden(el) {
		if (!el.offsetParent && el.tagName !== 'BODY') return true;
		const style = window.getComputedStyle(el);
		return style.display === 'none' || style.visibility === 'hidden';
	}

	function walkText(el) {
		let out = '';
		for (const node of el.childNodes) {
			if (node.nodeType === Node.TEXT_NODE) {
				out += node.textContent;
			} else if (node.nodeType === Node.ELEMENT_NODE) {
				const tag = node.tagName.toLowerCase();
				if (tag === 'input' || tag === 'textarea' || tag === 'select' ||
					tag === 'option' || tag === 'script' || tag === 'style') continue;
				if (isHidden(node)) continue;
				out += walkText(node);
			}
		}
		return out;
	}

	function labelText(input) {
		if (input.id) {
			const lab = root.querySelector('label[for="' + input.id + '"]');
			if (lab) return lab.textContent.trim();
		}
		const wrap = input.closest('label');
		if (wrap) return wrap.textContent.trim();
		const sib = input.nextElementSibling;
		if (sib && sib.tagName.toLowerCase() === 'label') return sib.textContent.trim();
		return '';
	}

	const containers = Array.from(root.querySelectorAll(questionSel));
	const questions = containers.map((card, index) => {
		const q = {
			index: index,
			text: walkText(card).replace(/\s+/g, ' ').trim(),
			containerId: card.id || '',
			dataAttrValue: dataAttr ? (card.getAttribute(dataAttr) || '') : '',
			visible: !isHidden(card) && card.getBoundingClientRect().height > 0,
			hasSliderTrack: trackSel ? !!card.querySelector(trackSel) : false,
			inputTag: '', inputType: '', inputId: '', inputName: '',
			radioCount: 0, checkboxCount: 0,
			nrsLabels: [], choices: [],
			hasNonHiddenInput: false,
			positionIndex: 0
		};

		// position among same-tag siblings that also match the card marker
		let pos = 1;
		let prev = card.previousElementSibling;
		while (prev) {
			if (prev.tagName === card.tagName && prev.matches(questionSel)) pos++;
			prev = prev.previousElementSibling;
		}
		q.positionIndex = pos;

		const inputs = Array.from(card.querySelectorAll('input, textarea, select'))
			.filter(el => el.type !== 'hidden' && !isHidden(el));
		if (inputs.length === 0) {
			// numeric-rating widgets use buttons, not inputs
			const buttons = Array.from(card.querySelectorAll('button, [role="button"]'))
				.filter(el => !isHidden(el) && /^\d+$/.test(el.textContent.trim()));
			q.nrsLabels = buttons.map(el => el.textContent.trim());
			q.hasNonHiddenInput = q.nrsLabels.length > 0 || q.hasSliderTrack;
			return q;
		}
		q.hasNonHiddenInput = true;

		const first = inputs[0];
		q.inputTag = first.tagName.toLowerCase();
		q.inputType = first.type || '';
		q.inputId = first.id || '';
		q.inputName = first.name || '';

		q.radioCount = inputs.filter(el => el.type === 'radio').length;
		q.checkboxCount = inputs.filter(el => el.type === 'checkbox').length;

		if (q.inputTag === 'select') {
			q.choices = Array.from(first.options)
				.map(o => o.textContent.trim())
				.filter(t => t.length > 0);
		} else if (q.radioCount > 1 || q.checkboxCount > 1) {
			q.choices = inputs
				.filter(el => el.type === 'radio' || el.type === 'checkbox')
				.map(labelText)
				.filter(t => t.length > 0);
		}

		return q;
	});

	return { rootFound: true, questions: questions };
}`

// pageTitleJS derives the page's long title from the largest, earliest
// heading-like text on the page.
const pageTitleJS = `(rootSel) => {
	const root = document.querySelector(rootSel) || document.body;
	const scopes = [root, document.body];
	for (const scope of scopes) {
		for (const sel of ['h1', 'h2', 'h3', '.form-title', '[class*="title"]']) {
			const el = scope.querySelector(sel);
			if (el && el.offsetParent && el.textContent.trim().length > 0) {
				return el.textContent.replace(/\s+/g, ' ').trim();
			}
		}
	}
	return document.title || '';
}`

// visibleQuestionsJS returns the text and index of every question container
// with non-zero rendered size and a non-hidden computed style. The Go side
// turns these into the snapshot identifiers used for conditional discovery.
const visibleQuestionsJS = `(rootSel, questionSel) => {
	const root = document.querySelector(rootSel);
	if (!root) return [];
	return Array.from(root.querySelectorAll(questionSel))
		.map((card, index) => ({ index: index, text: card.textContent.replace(/\s+/g, ' ').trim() }))
		.filter((q, i) => {
			const card = root.querySelectorAll(questionSel)[i];
			const rect = card.getBoundingClientRect();
			const style = window.getComputedStyle(card);
			return rect.width > 0 && rect.height > 0 &&
				style.display !== 'none' && style.visibility !== 'hidden';
		});
}`

// navButtonsJS collects candidate navigation buttons from the region that
// structurally follows the survey root, falling back to the root's parent
// when there is no following sibling.
const navButtonsJS = `(rootSel) => {
	const root = document.querySelector(rootSel);
	if (!root) return { regionFound: false, buttons: [] };
	let region = root.nextElementSibling;
	if (!region || region.querySelectorAll('button, [role="button"], input[type="submit"]').length === 0) {
		region = root.parentElement;
	}
	if (!region) return { regionFound: false, buttons: [] };
	const buttons = Array.from(region.querySelectorAll('button, [role="button"], input[type="submit"]'))
		.filter(el => el.offsetParent)
		.map((el, index) => ({
			index: index,
			text: (el.textContent || el.value || '').replace(/\s+/g, ' ').trim(),
			id: el.id || '',
			disabled: el.disabled === true || el.getAttribute('aria-disabled') === 'true'
		}));
	return { regionFound: true, buttons: buttons };
}`

// clickNavButtonJS re-locates a navigation button by its text inside the
// navigation region and clicks it. Fallback path for buttons whose selector
// stopped resolving after a partial re-render.
const clickNavButtonJS = `(rootSel, text) => {
	const root = document.querySelector(rootSel);
	if (!root) return false;
	const region = root.nextElementSibling || root.parentElement;
	if (!region) return false;
	const buttons = Array.from(region.querySelectorAll('button, [role="button"], input[type="submit"]'));
	const target = buttons.find(el => (el.textContent || el.value || '').trim() === text);
	if (!target) return false;
	target.click();
	return true;
}`

// validationStateJS looks for visible validation-blocking UI: modal dialogs
// and inline field errors. Dismiss candidates are reported with their text
// so the controller can prefer an explicit acknowledge button.
const validationStateJS = `() => {
	const modalSelectors = ['.modal.show', '.modal[style*="display: block"]',
		'[role="dialog"]', '[role="alertdialog"]', '.swal2-popup', '.dialog-open'];
	const inlineSelectors = ['.invalid-feedback', '.field-error', '.error-message',
		'.validation-error', '[aria-invalid="true"]'];

	function isShown(el) {
		const rect = el.getBoundingClientRect();
		return rect.width > 0 && rect.height > 0;
	}

	let modal = null;
	for (const sel of modalSelectors) {
		const candidates = Array.from(document.querySelectorAll(sel)).filter(isShown);
		if (candidates.length > 0) { modal = candidates[0]; break; }
	}

	const state = { modalVisible: !!modal, dismissButtons: [], closeMarkers: 0, inlineErrors: 0 };
	if (modal) {
		state.dismissButtons = Array.from(modal.querySelectorAll('button, [role="button"]'))
			.filter(isShown)
			.map(el => (el.textContent || '').replace(/\s+/g, ' ').trim())
			.filter(t => t.length > 0);
		state.closeMarkers = modal.querySelectorAll('.close, .btn-close, [aria-label="Close"]').length;
	}
	for (const sel of inlineSelectors) {
		state.inlineErrors += Array.from(document.querySelectorAll(sel)).filter(isShown).length;
	}
	return state;
}`

// dismissModalJS clicks the first dismiss control it can find inside the
// visible modal: a button whose text matches, then a generic close marker.
const dismissModalJS = `(preferredTexts) => {
	const modalSelectors = ['.modal.show', '.modal[style*="display: block"]',
		'[role="dialog"]', '[role="alertdialog"]', '.swal2-popup', '.dialog-open'];
	let modal = null;
	for (const sel of modalSelectors) {
		const el = document.querySelector(sel);
		if (el && el.getBoundingClientRect().height > 0) { modal = el; break; }
	}
	if (!modal) return 'none';
	const buttons = Array.from(modal.querySelectorAll('button, [role="button"]'));
	for (const want of preferredTexts) {
		const hit = buttons.find(el => (el.textContent || '').trim().toLowerCase() === want);
		if (hit) { hit.click(); return 'text'; }
	}
	const close = modal.querySelector('.close, .btn-close, [aria-label="Close"]');
	if (close) { close.click(); return 'marker'; }
	return 'none';
}`

// radioGroupsJS enumerates all radio groups under the survey root by input
// name, with each group's first container position. Used when a field's own
// container scope yields no radios.
const radioGroupsJS = `(rootSel) => {
	const root = document.querySelector(rootSel);
	if (!root) return [];
	const groups = {};
	Array.from(root.querySelectorAll('input[type="radio"]')).forEach((el, i) => {
		const name = el.name || '__anon' + i;
		if (!groups[name]) groups[name] = { name: name, count: 0, firstIndex: i };
		groups[name].count++;
	});
	return Object.values(groups);
}`

// radioCheckedJS reports whether the radio at an index inside a scope is
// checked, and returns enough to retry via its label.
const radioCheckedJS = `(scopeSel, index) => {
	const scope = document.querySelector(scopeSel);
	if (!scope) return { found: false };
	const radios = scope.querySelectorAll('input[type="radio"]');
	if (index >= radios.length) return { found: false };
	const radio = radios[index];
	return { found: true, checked: radio.checked, id: radio.id || '' };
}`

// nativeSelectJS sets a native <select> by visible option text and fires the
// change event the platform listens for. Returns false for custom widgets.
const nativeSelectJS = `(selector, optionText) => {
	const el = document.querySelector(selector);
	if (!el || el.tagName.toLowerCase() !== 'select') return false;
	const options = Array.from(el.options);
	const target = options.find(o => o.textContent.trim() === optionText.trim());
	if (!target) return false;
	el.value = target.value;
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
}`

// nrsButtonsJS collects integer-labeled buttons in a scope, sorted
// numerically, returning their texts so the dispatcher can click by index.
const nrsButtonsJS = `(scopeSel) => {
	const scope = document.querySelector(scopeSel);
	if (!scope) return [];
	return Array.from(scope.querySelectorAll('button, [role="button"]'))
		.filter(el => el.offsetParent && /^\d+$/.test(el.textContent.trim()))
		.map(el => el.textContent.trim())
		.sort((a, b) => parseInt(a, 10) - parseInt(b, 10));
}`

// clickNRSButtonJS clicks the integer-labeled button with the given label.
const clickNRSButtonJS = `(scopeSel, label) => {
	const scope = document.querySelector(scopeSel);
	if (!scope) return false;
	const target = Array.from(scope.querySelectorAll('button, [role="button"]'))
		.find(el => el.textContent.trim() === label);
	if (!target) return false;
	target.click();
	return true;
}`

// datePickerClickDayJS clicks the calendar cell whose text equals the target
// day after the picker has been opened, skipping disabled and outside-month
// cells.
const datePickerClickDayJS = `(day) => {
	const cells = Array.from(document.querySelectorAll(
		'.datepicker td, .calendar td, [class*="datepicker"] [class*="day"], .react-datepicker__day'));
	const target = cells.find(el => {
		if (el.textContent.trim() !== String(day)) return false;
		const cls = el.className || '';
		if (/disabled|outside|other-month|old|new/.test(cls)) return false;
		return el.offsetParent !== null;
	});
	if (!target) return false;
	target.click();
	return true;
}`

// blurActiveJS drops focus so the platform's own validation runs.
const blurActiveJS = `() => {
	if (document.activeElement && document.activeElement !== document.body) {
		document.activeElement.blur();
	}
	return true;
}`

// contentHeightJS computes the pixel height the viewport must grow to so the
// whole survey root fits in one element screenshot: the max of the root's
// scroll and client heights and the lowest question bottom, plus the height
// of the navigation region.
const contentHeightJS = `(rootSel, questionSel) => {
	const root = document.querySelector(rootSel);
	if (!root) return 0;
	let height = Math.max(root.scrollHeight, root.clientHeight);
	Array.from(root.querySelectorAll(questionSel)).forEach(card => {
		const rect = card.getBoundingClientRect();
		const bottom = rect.bottom + window.scrollY;
		if (bottom > height) height = bottom;
	});
	const nav = root.nextElementSibling;
	if (nav) height += nav.getBoundingClientRect().height;
	return Math.ceil(height);
}`

// clickRadioJS clicks the radio at an index inside a scope. The DOM click
// both checks the input and fires the platform's change handlers.
const clickRadioJS = `(scopeSel, index) => {
	const scope = document.querySelector(scopeSel);
	if (!scope) return false;
	const radios = scope.querySelectorAll('input[type="radio"]');
	if (index >= radios.length) return false;
	radios[index].click();
	return true;
}`

// clickRadioLabelJS retries a radio through its enclosing or for-linked
// label, for widgets that hide the native input under a styled label.
const clickRadioLabelJS = `(scopeSel, index) => {
	const scope = document.querySelector(scopeSel);
	if (!scope) return false;
	const radios = scope.querySelectorAll('input[type="radio"]');
	if (index >= radios.length) return false;
	const radio = radios[index];
	let label = radio.closest('label');
	if (!label && radio.id) label = scope.querySelector('label[for="' + radio.id + '"]');
	if (!label) return false;
	label.click();
	return true;
}`

// clickGroupRadioJS clicks the radio at an index within a named group under
// the survey root. Fallback when a field's container scope has no radios.
const clickGroupRadioJS = `(rootSel, name, index) => {
	const root = document.querySelector(rootSel);
	if (!root) return false;
	const radios = root.querySelectorAll('input[type="radio"][name="' + name + '"]');
	if (index >= radios.length) return false;
	radios[index].click();
	return true;
}`

// clickCheckboxJS clicks the first checkbox inside a scope.
const clickCheckboxJS = `(scopeSel) => {
	const scope = document.querySelector(scopeSel);
	if (!scope) return false;
	const box = scope.querySelector('input[type="checkbox"]');
	if (!box) return false;
	box.click();
	return true;
}`

// clickCustomOptionJS clicks the option at an index among the common custom
// dropdown option markers, after the dropdown has been opened.
const clickCustomOptionJS = `(index) => {
	const selectors = ['[role="option"]', '.dropdown-menu li', '.select-option',
		'.dropdown-item', 'ul.options li'];
	for (const sel of selectors) {
		const options = Array.from(document.querySelectorAll(sel))
			.filter(el => el.offsetParent);
		if (options.length > index) {
			options[index].click();
			return true;
		}
	}
	return false;
}`

// setMonthYearJS drives a two-part month/year dropdown inside an open date
// picker: the month is matched by name or index, the year by text. Returns
// false when the picker has no such widget, which is not an error.
const setMonthYearJS = `(monthName, monthIndex, year) => {
	const month = document.querySelector(
		'.datepicker select[class*="month"], [class*="datepicker"] select[class*="month"], select.month-select');
	const yearEl = document.querySelector(
		'.datepicker select[class*="year"], [class*="datepicker"] select[class*="year"], select.year-select');
	if (!month || !yearEl) return false;

	const monthOpt = Array.from(month.options).find(o =>
		o.textContent.trim().toLowerCase().startsWith(monthName.toLowerCase()));
	if (monthOpt) {
		month.value = monthOpt.value;
	} else if (monthIndex < month.options.length) {
		month.value = month.options[monthIndex].value;
	} else {
		return false;
	}
	month.dispatchEvent(new Event('change', { bubbles: true }));

	const yearOpt = Array.from(yearEl.options).find(o => o.textContent.trim() === String(year));
	if (!yearOpt) return false;
	yearEl.value = yearOpt.value;
	yearEl.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
}`

// questionCountJS is the cheap transition signal: how many question
// containers are currently under the root.
const questionCountJS = `(rootSel, questionSel) => {
	const root = document.querySelector(rootSel);
	if (!root) return 0;
	return root.querySelectorAll(questionSel).length;
}`
